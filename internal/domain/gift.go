package domain

import "strings"

type GiftType string

const (
	GiftCigar   GiftType = "CIGAR"
	GiftWhiskey GiftType = "WHISKEY"
	GiftKiss    GiftType = "KISS"
	GiftRose    GiftType = "ROSE"
	GiftMoney   GiftType = "MONEY"
)

// ParseGiftType normalizes and validates a submitted gift type.
func ParseGiftType(s string) (GiftType, error) {
	gift := GiftType(strings.ToUpper(s))
	switch gift {
	case GiftCigar, GiftWhiskey, GiftKiss, GiftRose, GiftMoney:
		return gift, nil
	}
	return "", ErrInvalidGiftType
}
