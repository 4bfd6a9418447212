package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"example.com/factory/services/fulfillment/internal/model"
)

// ScheduleResult is the linkage returned by SimAL for a submitted order
type ScheduleResult struct {
	ScheduleID            string     `json:"schedule_id"`
	EstimatedDurationSecs int        `json:"estimated_duration_secs"`
	ExpectedAt            *time.Time `json:"expected_at"`
}

// ScheduledTask is one workstation task of a schedule
type ScheduledTask struct {
	TaskID        string `json:"task_id"`
	WorkstationID int    `json:"workstation_id"`
	Status        string `json:"status"`
}

// SchedulerClient calls the SimAL production scheduling service
type SchedulerClient struct {
	http httpClient
}

// NewSchedulerClient creates a scheduler client
func NewSchedulerClient(baseURL string, timeout time.Duration) *SchedulerClient {
	return &SchedulerClient{http: newHTTPClient(baseURL, timeout)}
}

type submitRequest struct {
	OrderNumber string           `json:"order_number"`
	Priority    int              `json:"priority"`
	TargetAt    *time.Time       `json:"target_at,omitempty"`
	Items       []submitItemLine `json:"items"`
}

type submitItemLine struct {
	ItemType string `json:"item_type"`
	ItemID   int64  `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Submit registers a production order with SimAL and returns the schedule
// linkage
func (c *SchedulerClient) Submit(ctx context.Context, order *model.ProductionOrder) (ScheduleResult, error) {
	req := submitRequest{
		OrderNumber: order.OrderNumber,
		Priority:    order.Priority,
		TargetAt:    order.TargetAt,
	}
	for _, item := range order.Items {
		req.Items = append(req.Items, submitItemLine{
			ItemType: string(item.ItemType),
			ItemID:   item.ItemID,
			Quantity: item.Quantity,
		})
	}

	var result ScheduleResult
	if err := c.http.doJSON(ctx, http.MethodPost, "/api/v1/schedules", req, &result); err != nil {
		return ScheduleResult{}, err
	}
	return result, nil
}

// UpdateTaskStatus reports workstation progress back to SimAL
func (c *SchedulerClient) UpdateTaskStatus(ctx context.Context, taskID, status string) error {
	path := fmt.Sprintf("/api/v1/tasks/%s/status", taskID)
	return c.http.doJSON(ctx, http.MethodPut, path, map[string]string{"status": status}, nil)
}

// GetScheduledTasks lists the tasks of a schedule
func (c *SchedulerClient) GetScheduledTasks(ctx context.Context, scheduleID string) ([]ScheduledTask, error) {
	var tasks []ScheduledTask
	path := fmt.Sprintf("/api/v1/schedules/%s/tasks", scheduleID)
	if err := c.http.doJSON(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// TaskID derives the deterministic SimAL task id for a workstation order
func TaskID(workstationID int, orderNumber string) string {
	return fmt.Sprintf("%d-%s", workstationID, orderNumber)
}
