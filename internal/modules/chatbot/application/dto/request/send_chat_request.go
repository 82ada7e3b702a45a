package request

type SendChatRequest struct {
	Question string `json:"question"`
}
