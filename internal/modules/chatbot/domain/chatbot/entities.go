package chatbot

import (
	"strings"
	"time"
	"unicode"
)

// ChatLog 一条会话问答记录（按 created_at 倒序取最近上下文）
type ChatLog struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Sid       string    `gorm:"column:sid;type:varchar(64);not null;index:idx_chat_logs_sid"`
	Question  string    `gorm:"column:question;type:text;not null"`
	Answer    string    `gorm:"column:answer;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime;not null;autoCreateTime"`
}

func (ChatLog) TableName() string { return "chat_logs" }

// TermDefinition 金融术语定义（term_dictionary 表）
type TermDefinition struct {
	Id   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"termId"`
	Term string `gorm:"column:term;type:varchar(64);not null" json:"term"`
	Desc string `gorm:"column:term_desc;type:text;not null" json:"desc"`
}

func (TermDefinition) TableName() string { return "term_dictionary" }

// ChatDummy 问答语料（chat_dummy 表，向量化摄取的来源）
type ChatDummy struct {
	Id       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	TermId   int64  `gorm:"column:term_id;not null;index:idx_chat_dummy_term"`
	Question string `gorm:"column:question;type:text;not null"`
	Answer   string `gorm:"column:answer;type:text;not null"`
}

func (ChatDummy) TableName() string { return "chat_dummy" }

// AnswerRecord 召回候选答案（entryId 解析而来，也是重排服务的载荷）
type AnswerRecord struct {
	TermId int64  `json:"termId"`
	Answer string `json:"answer"`
}

// FallbackAnswer 兜底话术：召回/重排为空或模型判定离题时返回
const FallbackAnswer = "잘 모르겠어요. 조금 더 자세히 질문해주세요!"

// IsFallbackAnswer 判断生成结果是否等价于兜底话术
//
// 比较前剥离所有非字母数字字符（Unicode 级别），避免标点、空白或
// 表情差异导致兜底回答被当作有效回答写进会话日志。
func IsFallbackAnswer(answer string) bool {
	return normalizeAnswer(answer) == normalizeAnswer(FallbackAnswer)
}

func normalizeAnswer(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
