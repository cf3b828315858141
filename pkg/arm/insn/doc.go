// Package insn emits ARM (A32), Thumb (T16) and Thumb-2 wide (T32)
// instruction encodings into caller owned code buffers.
//
// Every encoder writes at the start of the slice it receives and returns the
// number of code units written: 1 for ARM words and Thumb half-words, 2 for
// Thumb-2 wide instructions (high half-word first). A zero return means the
// operand variant or flag combination is not encodable by that encoder, or the
// buffer is too short, and in that case the buffer is left untouched.
//
// Encoders do not validate ranges. Immediates wider than their field are
// truncated to the field width, and branch immediates must already be adjusted
// by the caller (see package branch).
package insn
