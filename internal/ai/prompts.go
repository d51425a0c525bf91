package ai

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"momentum/internal/model"
)

const (
	toolCreateTask = "createTask"
	toolCreateNote = "createNote"
)

func parseTasksPrompt(text string) string {
	return fmt.Sprintf(`Extract actionable tasks from the text below.
Return a JSON array; each element has "title" (short imperative phrase) and
"description" (remaining detail, may be empty). Do not invent tasks that are
not in the text.

Text:
%s`, text)
}

func suggestPriorityPrompt(title, description string) string {
	return fmt.Sprintf(`Given the task below, answer with exactly one word:
High, Medium, or Low.

Title: %s
Description: %s`, title, description)
}

func analyzeTaskPrompt(task model.Task) string {
	return fmt.Sprintf(`Analyze this task and respond with JSON containing
"summary", "complexity" (one of: trivial, moderate, complex),
"requiredSkills" (array of strings), "potentialBlockers" (array of strings),
and "subtasks" (array of {"title", "hours"}).

Title: %s
Description: %s`, task.Title, task.Description)
}

func summarizeNotePrompt(note model.Note) string {
	return fmt.Sprintf(`Summarize the note below and propose tags.
Respond with JSON: {"summary": string, "tags": [string]}.
Tags are single lowercase words.

Title: %s
Content:
%s`, note.Title, note.Content)
}

func refineGoalPrompt(freeform, template string) string {
	if template == "" {
		template = `Refine the goal below into a SMART goal and a sequential plan.
Respond with JSON: {"title", "motivation", "listName", "targetDate" (YYYY-MM-DD),
"tasks": [{"title", "description", "checklist": [string], "durationDays"}]}.`
	}
	return template + "\n\nGoal:\n" + freeform
}

func goalInsightsPrompt(goal model.Goal, tasks []model.Task) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Assess the goal below against its current tasks.
Respond with JSON: {"riskLevel" (one of: low, medium, high), "riskReasoning",
"nextActionSuggestion"}.

Goal: %s
Vision: %s
`, goal.Title, goal.Vision)
	if goal.TargetDate != nil {
		fmt.Fprintf(&sb, "Target date: %s\n", goal.TargetDate.Format(model.DateLayout))
	}
	sb.WriteString("Tasks:\n")
	for _, t := range tasks {
		fmt.Fprintf(&sb, "- [%s] %s\n", t.Status, t.Title)
	}
	return sb.String()
}

func smartSuggestionsPrompt(tasks []model.Task, goals []model.Goal) string {
	var sb strings.Builder
	sb.WriteString(`Suggest up to five short, concrete productivity actions for today.
Respond with a JSON array of strings.

Open tasks:
`)
	for _, t := range tasks {
		if t.IsDone() {
			continue
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", t.Title, t.Priority)
	}
	sb.WriteString("Goals:\n")
	for _, g := range goals {
		fmt.Fprintf(&sb, "- %s\n", g.Title)
	}
	return sb.String()
}

func nudgePrompt(tasks []model.Task, goals []model.Goal) string {
	var sb strings.Builder
	sb.WriteString("Write one short, encouraging sentence (no JSON, no quotes) nudging the user toward their work.\n")
	open := 0
	for _, t := range tasks {
		if !t.IsDone() {
			open++
		}
	}
	fmt.Fprintf(&sb, "They have %d open tasks", open)
	if len(goals) > 0 {
		fmt.Fprintf(&sb, " and are working toward: %s", goals[0].Title)
	}
	sb.WriteString(".")
	return sb.String()
}

// buildChatSystem embeds the live context the assistant needs: the current
// date, what is overdue or due today, and which lists exist (with IDs, so
// tool calls can target them).
func buildChatSystem(now time.Time, tasks []model.Task, lists []model.List) string {
	var sb strings.Builder
	sb.WriteString("You are the assistant inside momentum, a personal productivity app.\n")
	sb.WriteString("You can create tasks and notes for the user with the createTask and createNote functions; never claim to have created something without calling the function.\n")
	sb.WriteString("Keep answers short and practical.\n\n")
	fmt.Fprintf(&sb, "Current date: %s\n", now.Format("Monday, 2 January 2006"))

	var overdue, dueToday []string
	for _, t := range tasks {
		switch {
		case t.Overdue(now):
			overdue = append(overdue, t.Title)
		case !t.IsDone() && t.DueToday(now):
			dueToday = append(dueToday, t.Title)
		}
	}
	if len(overdue) > 0 {
		fmt.Fprintf(&sb, "Overdue tasks: %s\n", strings.Join(overdue, "; "))
	}
	if len(dueToday) > 0 {
		fmt.Fprintf(&sb, "Due today: %s\n", strings.Join(dueToday, "; "))
	}
	if len(lists) > 0 {
		sb.WriteString("Available lists:\n")
		for _, l := range lists {
			fmt.Fprintf(&sb, "- %s (id %s, %s)\n", l.Name, l.ID, l.Type)
		}
	}
	return sb.String()
}

func chatTools() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        toolCreateTask,
			Description: "Create a new task for the user.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":       {Type: genai.TypeString, Description: "Short imperative task title."},
					"description": {Type: genai.TypeString},
					"listId":      {Type: genai.TypeString, Description: "Target list id from the available lists."},
					"priority":    {Type: genai.TypeString, Enum: []string{"High", "Medium", "Low"}},
					"dueDate":     {Type: genai.TypeString, Description: "Due date, YYYY-MM-DD."},
				},
				Required: []string{"title"},
			},
		},
		{
			Name:        toolCreateNote,
			Description: "Create a new note for the user.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":   {Type: genai.TypeString},
					"content": {Type: genai.TypeString, Description: "Note body, plain text or simple HTML."},
					"listId":  {Type: genai.TypeString},
				},
				Required: []string{"title"},
			},
		},
	}
}

var parsedTasksSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
		},
		Required: []string{"title"},
	},
}

var taskAnalysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":           {Type: genai.TypeString},
		"complexity":        {Type: genai.TypeString, Enum: []string{"trivial", "moderate", "complex"}},
		"requiredSkills":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"potentialBlockers": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"subtasks": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title": {Type: genai.TypeString},
					"hours": {Type: genai.TypeNumber},
				},
				Required: []string{"title"},
			},
		},
	},
	Required: []string{"summary", "complexity"},
}

var noteAnalysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
		"tags":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"summary"},
}

var goalPlanSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":      {Type: genai.TypeString},
		"motivation": {Type: genai.TypeString},
		"listName":   {Type: genai.TypeString},
		"targetDate": {Type: genai.TypeString},
		"tasks": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":        {Type: genai.TypeString},
					"description":  {Type: genai.TypeString},
					"checklist":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"durationDays": {Type: genai.TypeInteger},
				},
				Required: []string{"title"},
			},
		},
	},
	Required: []string{"title", "tasks"},
}

var goalInsightsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"riskLevel":            {Type: genai.TypeString, Enum: []string{"low", "medium", "high"}},
		"riskReasoning":        {Type: genai.TypeString},
		"nextActionSuggestion": {Type: genai.TypeString},
	},
	Required: []string{"riskLevel"},
}

var stringListSchema = &genai.Schema{
	Type:  genai.TypeArray,
	Items: &genai.Schema{Type: genai.TypeString},
}
