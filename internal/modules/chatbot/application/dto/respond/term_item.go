package respond

type TermItem struct {
	TermId int64  `json:"termId"`
	Term   string `json:"term"`
	Desc   string `json:"desc"`
}
