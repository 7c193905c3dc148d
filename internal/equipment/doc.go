// Package equipment defines the equipment entity and its state machine.
//
// Each equipment type carries a fixed two-state vocabulary: open/closed for
// shutters and doors, on/off for lights and sound systems. Toggle flips
// between the two; IsCompatible answers whether a state is legal for a
// type, which matters when an admin changes an equipment's type under
// existing automation rules (see the automation package).
package equipment
