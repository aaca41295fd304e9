// Package viz renders charge configurations and traced equipotentials in the
// terminal.
//
//   - [Canvas]: braille pixel canvas addressed in model coordinates
//   - [Theme]: color schemes for lines, charges and the heat map
//   - styling helpers shared by the live view and the CLI summaries
package viz
