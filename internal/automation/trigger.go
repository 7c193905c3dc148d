package automation

// TriggerAction is one equipment action taken during a trigger evaluation
// round on the backend.
type TriggerAction struct {
	Action        string `json:"action"`
	EquipmentName string `json:"equipment_name"`
	Reason        string `json:"reason"`
}

// TriggerResult is the backend's report for a trigger evaluation round.
// ActionsCount matches len(Actions); a round that fires nothing returns a
// zero count with an empty list.
type TriggerResult struct {
	ActionsCount int             `json:"actions_count"`
	Actions      []TriggerAction `json:"actions"`
}

// Fired reports whether the evaluation round changed any equipment.
func (r *TriggerResult) Fired() bool {
	return r.ActionsCount > 0
}
