// Package shared holds pieces used by both the Temporal worker and client.
package shared

// TaskQueue is the Temporal task queue the report worker polls.
const TaskQueue = "fleet-report-task-queue"

// WorkflowIDPrefix prefixes every report workflow ID.
const WorkflowIDPrefix = "fleet-report"
