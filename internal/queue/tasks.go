package queue

const (
	TypeStagingCleanup = "staging:cleanup"
)

type StagingCleanupPayload struct {
	Dir       string `json:"dir"`
	Retention string `json:"retention"` // time.Duration string; "0" keeps files forever
}
