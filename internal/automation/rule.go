package automation

import (
	"fmt"
	"sort"
	"time"

	"github.com/avencall/homegrid-core/internal/equipment"
)

// Operator is a rule condition comparison operator.
type Operator string

// Condition operators.
const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
)

// AllOperators returns every valid condition operator.
func AllOperators() []Operator {
	return []Operator{OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual}
}

// IsValid reports whether the operator is one of the known comparison
// operators.
func (o Operator) IsValid() bool {
	for _, v := range AllOperators() {
		if o == v {
			return true
		}
	}
	return false
}

// Rule binds a sensor condition to an equipment action. When the sensor's
// value satisfies condition_operator against condition_value, the backend
// drives the target equipment to action_state.
type Rule struct {
	ID                int             `json:"id"`
	HouseID           int             `json:"house_id"`
	Name              string          `json:"name"`
	SensorID          int             `json:"sensor_id"`
	ConditionOperator Operator        `json:"condition_operator"`
	ConditionValue    float64         `json:"condition_value"`
	EquipmentID       int             `json:"equipment_id"`
	ActionState       equipment.State `json:"action_state"`
	IsActive          bool            `json:"is_active"`
	LastTriggered     *time.Time      `json:"last_triggered,omitempty"`
}

// Validate checks the rule's operator and returns ErrInvalidOperator when
// it is not part of the comparison vocabulary.
func (r *Rule) Validate() error {
	if !r.ConditionOperator.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidOperator, r.ConditionOperator)
	}
	return nil
}

// SortByID orders rules by ascending id in place.
func SortByID(rules []Rule) {
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].ID < rules[j].ID
	})
}
