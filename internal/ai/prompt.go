package ai

import (
	"fmt"
	"strings"

	"github.com/nhle/taskboard/internal/board"
)

const systemPrompt = "You are a project management assistant for a kanban board. " +
	"You only read the board data you are given and cannot change it. " +
	"Keep responses concise and focused."

// writeBoard renders the snapshot as one block per column:
//
//	To Do (2 tasks):
//	- Draft plan: First draft
func writeBoard(sb *strings.Builder, snap board.Snapshot) {
	for _, col := range snap.PerColumn {
		fmt.Fprintf(sb, "%s (%d tasks):\n", strings.TrimSpace(col.ColumnName), len(col.Tasks))
		for _, t := range col.Tasks {
			desc := strings.TrimSpace(t.Description)
			if desc == "" {
				desc = "No description"
			}
			fmt.Fprintf(sb, "- %s: %s\n", t.Title, desc)
		}
		sb.WriteString("\n")
	}
}

// summaryPrompt builds the user prompt for a project summary.
func summaryPrompt(snap board.Snapshot) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Please provide a concise summary of the project %q ", snap.ProjectName)
	sb.WriteString("based on the following task data:\n\n")
	writeBoard(&sb, snap)

	sb.WriteString("Please provide:\n")
	sb.WriteString("1. Overall project status and progress\n")
	sb.WriteString("2. Key tasks and priorities\n")
	sb.WriteString("3. Any potential blockers or issues\n")
	sb.WriteString("4. Recommendations for next steps\n\n")
	sb.WriteString("Keep the summary concise but informative (2-3 paragraphs max).")

	return sb.String()
}

// questionPrompt builds the user prompt for a free-form question.
func questionPrompt(snap board.Snapshot, question string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are helping with project management for %q. ", snap.ProjectName)
	sb.WriteString("Based on the following project data, answer the user's question.\n\n")
	sb.WriteString("Project data:\n")
	writeBoard(&sb, snap)

	fmt.Fprintf(&sb, "User question: %s\n\n", question)
	sb.WriteString("Give a helpful, accurate answer based on the project data. ")
	sb.WriteString("If the question cannot be answered with the available information, ")
	sb.WriteString("say so and suggest what additional information might be needed.")

	return sb.String()
}
