package respond

type ChatRespond struct {
	Sid    string `json:"sid"`
	Answer string `json:"answer"`
}
