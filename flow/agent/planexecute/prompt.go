package planexecute

import "github.com/favbox/promptflow/schema"

// 提示词模板使用的参数名。
const (
	ArgGoal          = "goal"
	ArgTools         = "tools"
	ArgPlan          = "plan"
	ArgStep          = "step"
	ArgExecutedSteps = "executed_steps"
	ArgObservation   = "observation"
)

// DefaultPlannerMessages 内置的规划提示词。
func DefaultPlannerMessages() []schema.MessagesTemplate {
	return []schema.MessagesTemplate{
		schema.SystemMessage(`You are an expert planning agent. Given an objective, create a step-by-step plan to achieve it.

Each step must be specific and actionable, include the context it needs, and contribute directly to the objective.
The final step must produce the complete answer.

You can use these tools while executing the plan:
{tools}

Respond with a numbered list, one step per line, and nothing else.`),
		schema.UserMessage("{goal}"),
	}
}

// DefaultExecutorMessages 内置的执行提示词。
func DefaultExecutorMessages() []schema.MessagesTemplate {
	return []schema.MessagesTemplate{
		schema.SystemMessage("You are a diligent and meticulous executor agent. Follow the given plan and execute your tasks carefully and thoroughly."),
		schema.UserMessage(`## OBJECTIVE
{goal}
## Given the following plan:
{plan}
## COMPLETED STEPS & RESULTS
{executed_steps}
## Your task is to execute this step:
{step}`),
	}
}

// DefaultOracleMessages 内置的自评估提示词，模型以 yes 或 no 开头作答。
func DefaultOracleMessages() []schema.MessagesTemplate {
	return []schema.MessagesTemplate{
		schema.SystemMessage("You judge whether an observation completes a task. Answer with yes or no, followed by a short reason."),
		schema.UserMessage("Task: {step}\nObservation: {observation}\nDoes the observation complete the task?"),
	}
}
