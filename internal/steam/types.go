package steam

// eventsResponse is the top-level shape of the partner-events endpoint.
// Only the consumed fields are declared; the feed carries plenty more and
// schema drift must never break normalization.
type eventsResponse struct {
	Success int     `json:"success"`
	ErrMsg  string  `json:"err_msg"`
	Events  []Event `json:"events"`
}

// Event is one raw event record as returned by the feed, newest first.
type Event struct {
	GID              string            `json:"gid"`
	EventName        string            `json:"event_name"`
	AppID            int               `json:"appid"`
	RTime32StartTime int64             `json:"rtime32_start_time"`
	AnnouncementBody *AnnouncementBody `json:"announcement_body"`
}

// AnnouncementBody carries the announcement content of an event. The GID
// here identifies the announcement itself and is the identity key used
// throughout the pipeline.
type AnnouncementBody struct {
	GID      string `json:"gid"`
	Headline string `json:"headline"`
	PostTime int64  `json:"posttime"`
	Body     string `json:"body"` // BBCode
}
