package events

type Event interface {
	GetType() string
}

type SendMail struct {
	UserID  string      `json:"userID"`
	Subject string      `json:"subject"`
	Data    interface{} `json:"data"`
}

func (e SendMail) GetType() string {
	return "SendMail"
}

// SalesMail goes to the internal sales address rather than to a stored user.
type SalesMail struct {
	Subject string      `json:"subject"`
	Data    interface{} `json:"data"`
}

func (e SalesMail) GetType() string {
	return "SalesMail"
}
