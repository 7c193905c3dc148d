package automation

import (
	"context"

	"github.com/avencall/homegrid-core/internal/equipment"
)

// ResolutionPolicy selects how a type change deals with rules whose action
// state the new type cannot express.
type ResolutionPolicy string

// Resolution policies.
const (
	// ResolveDelete removes every incompatible rule before the type change.
	ResolveDelete ResolutionPolicy = "delete"

	// ResolveKeep applies the type change and leaves the incompatible
	// rules in place. The backend skips rules whose action state does not
	// fit the equipment's vocabulary, so kept rules are inert until
	// edited, but they stay visible for the user to repair.
	ResolveKeep ResolutionPolicy = "keep"
)

// TypeChangePlan describes the consequences of changing an equipment's
// type before anything is committed.
type TypeChangePlan struct {
	EquipmentID  int
	NewType      equipment.EquipmentType
	Incompatible []Rule
}

// RequiresResolution reports whether the plan has rules that conflict with
// the new type's state vocabulary.
func (p *TypeChangePlan) RequiresResolution() bool {
	return len(p.Incompatible) > 0
}

// TypeChangeResult reports the outcome of resolving a plan. Deleted and
// Failed partition the incompatible rule ids: deletions are attempted one
// by one and a failure on one rule never aborts the rest.
type TypeChangeResult struct {
	Deleted []int
	Failed  []int
}

// RuleDeleter deletes a single automation rule on the authoritative backend.
type RuleDeleter interface {
	DeleteRule(ctx context.Context, id int) error
}

// PlanTypeChange inspects the rule index and returns the plan for moving
// the equipment to newType: which rules would be left with an action state
// the new vocabulary cannot express.
func PlanTypeChange(equipmentID int, newType equipment.EquipmentType, idx *Index) (*TypeChangePlan, error) {
	if !newType.IsValid() {
		return nil, equipment.ErrInvalidType
	}
	return &TypeChangePlan{
		EquipmentID:  equipmentID,
		NewType:      newType,
		Incompatible: idx.IncompatibleWith(equipmentID, newType),
	}, nil
}

// Resolve executes the plan under the given policy. With ResolveDelete it
// deletes each incompatible rule via the deleter, collecting per-rule
// outcomes; with ResolveKeep it deletes nothing and reports every rule as
// neither deleted nor failed. The caller applies the type change itself
// afterwards, regardless of partial deletion failures.
func (p *TypeChangePlan) Resolve(ctx context.Context, policy ResolutionPolicy, deleter RuleDeleter) (*TypeChangeResult, error) {
	res := &TypeChangeResult{}
	if policy == ResolveKeep {
		return res, nil
	}
	if policy != ResolveDelete {
		return nil, ErrInvalidPolicy
	}

	for _, r := range p.Incompatible {
		if err := deleter.DeleteRule(ctx, r.ID); err != nil {
			res.Failed = append(res.Failed, r.ID)
			continue
		}
		res.Deleted = append(res.Deleted, r.ID)
	}
	return res, nil
}
