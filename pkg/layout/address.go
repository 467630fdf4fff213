package layout

import (
	"strconv"
	"strings"
)

// FormatAddress renders addr as "0x" followed by uppercase hex digits.
func FormatAddress(addr uint64) string {
	return "0x" + strings.ToUpper(strconv.FormatUint(addr, 16))
}

// Addresser synthesizes consecutive display addresses for one layer.
// It performs no collision detection; addresses are never used as keys.
type Addresser struct {
	next uint64
}

// NewAddresser starts a cursor at base.
func NewAddresser(base uint64) *Addresser {
	return &Addresser{next: base}
}

// Next returns the address of an entry of the given size and advances the
// cursor past it.
func (a *Addresser) Next(size int) string {
	addr := a.next
	if size > 0 {
		a.next += uint64(size)
	}
	return FormatAddress(addr)
}

// Peek returns the address the next entry will receive.
func (a *Addresser) Peek() string {
	return FormatAddress(a.next)
}
