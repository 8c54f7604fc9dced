// Package viz draws the scene in a terminal and drives it from a Bubble Tea
// program.
//
//   - [Canvas]: braille dot grid, 2x4 dots per cell
//   - [Wireframe]: renderer that projects node triangles onto a canvas
//   - [Model]: live view; one driver cycle per tick
//   - [Launcher]: preset menu in front of the live view
//
// # Key Bindings
//
//	click  - push the body under the pointer
//	x/y/z  - raise gravity on an axis by one step
//	X/Y/Z  - lower gravity on an axis by one step
//	0      - restore the scene's gravity
//	arrows - orbit the camera
//	+/-    - zoom
//	space  - pause
//	t      - cycle themes
//	?      - help
package viz
