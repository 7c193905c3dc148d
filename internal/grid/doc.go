// Package grid models the floor plan as a rectangular grid of cells.
//
// Two wire formats coexist: a legacy scalar format (one integer per cell,
// the base value) and a layered format carrying base plus sensor/equipment
// occupancy lists. Both decode into the same Cell type, and all queries go
// through normalising accessors so the rest of the system never branches on
// the format.
//
// Base values are tagged integers: 0 empty, 1 exterior, 2000+roomID for
// interior rooms. Exterior cells are walkable; the only movement obstacle
// in the model is a closed door (see the movement package).
package grid
