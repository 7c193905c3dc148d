// Package automation models sensor-driven automation rules and the
// bookkeeping around them.
//
// Rules are evaluated by the backend; this package mirrors them, indexes
// them by sensor and equipment, and implements the type-change protocol:
// when an equipment changes type, rules whose action state the new type
// cannot express are found with Index.IncompatibleWith and resolved
// through a TypeChangePlan, either deleting them one by one or keeping
// them inert by explicit choice.
package automation
