package react

import "github.com/favbox/promptflow/schema"

// 提示词模板使用的参数名。
const (
	ArgInput      = "input"
	ArgTools      = "tools"
	ArgToolNames  = "tool_names"
	ArgScratchpad = "agent_scratchpad"
)

// DefaultMessages 内置的 MRKL 提示词。
func DefaultMessages() []schema.MessagesTemplate {
	return []schema.MessagesTemplate{
		schema.SystemMessage(`Answer the following questions as best you can. You have access to the following tools:

{tools}

Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [{tool_names}]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question`),
		schema.UserMessage("Question: {input}\nThought:{agent_scratchpad}"),
	}
}
