// Package audio is the adapter over the platform audio hardware layer.
// It queries and mutates output volume and mute properties per channel element,
// enumerates output devices, and forwards hardware property-change notifications
// onto channels owned by the caller.
package audio
