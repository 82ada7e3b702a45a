package gms

import (
	"fmt"
	"strings"

	"PensionChat/internal/modules/chatbot/domain/chatbot"
)

// developerPrompt 固定人设指令：口吻、韩语、长度约束，以及离题时的兜底话术
const developerPrompt = `I'll give you basic words and definitions, and I'll give you questions and answers that are most similar.
Based on that information, please create an answer to the user's question.
Please boldly remove and answer any words, definitions, and examples of answers that you think are irrelevant to the user's question.
Do not use Markdown formatting. Instead, present the answer in plain text, clearly separating paragraphs for better readability.
The answer must be written exclusively in a polite and friendly conversational tone using the '요' ending. Never use informal speech or the overly formal '습니다' ending. Use exclamation marks, question marks and emojis to make it feel warm and approachable.
Lastly, please answer all questions in Korean. Make sure that the answer is concise and stays within 270 tokens.
If the question is not related to finance, retirement pensions, or financial products, only respond with: "` + chatbot.FallbackAnswer + `"`

// BuildUserContent 组装检索增强的用户消息：
// 去重后的术语定义、重排命中的答案文本、最近会话记录（新在前）、原始问题。
func BuildUserContent(question string, termMap map[int64]chatbot.TermDefinition, answers []string, history []chatbot.ChatLog) string {
	var termText strings.Builder
	for _, def := range termMap {
		termText.WriteString("Word: ")
		termText.WriteString(def.Term)
		termText.WriteString("\nDefinition: ")
		termText.WriteString(def.Desc)
		termText.WriteString("\n\n")
	}

	var answerText strings.Builder
	for _, ans := range answers {
		answerText.WriteString(ans)
		answerText.WriteString("\n")
	}

	var chatLogText strings.Builder
	for _, log := range history {
		chatLogText.WriteString("Q. ")
		chatLogText.WriteString(log.Question)
		chatLogText.WriteString("\nA. ")
		chatLogText.WriteString(log.Answer)
		chatLogText.WriteString("\n\n")
	}

	return fmt.Sprintf(`My question is as below:
%s

The related words are as follows:
%s
The answers that are most similar to my question are as follows:
%s
If there are no similar answers, please analyze the previous conversation flow and generate a response based on the context. When analyzing the previous conversation, start with the most recent dialogue. If no relevant context or topic is found, go further back step by step until you can understand the flow.

The previous conversation flow is as follows:
%s
Please refer to the above materials, analyze the similar answers and the previous conversation flow, and generate a response that fits naturally and appropriately to the user's question.`,
		question, termText.String(), answerText.String(), chatLogText.String())
}
