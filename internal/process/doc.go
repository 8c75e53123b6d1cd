// Package process groups an external tool with its children so that a
// cancelled conversion does not leave orphaned TeX processes behind.
package process
