package knx

import (
	"fmt"
	"strconv"
	"strings"
)

// IndividualAddress — физический адрес устройства в формате area.line.device.
//
// Раскладка битов: AAAA LLLL DDDDDDDD.
type IndividualAddress uint16

// NewIndividualAddress собирает адрес из компонент, проверяя диапазоны.
func NewIndividualAddress(area, line, device int) (IndividualAddress, error) {
	if area < 0 || area > 15 || line < 0 || line > 15 || device < 0 || device > 255 {
		return 0, fmt.Errorf("%w: %d.%d.%d out of range", ErrInvalidAddress, area, line, device)
	}
	return IndividualAddress(area<<12 | line<<8 | device), nil
}

// ParseIndividualAddress разбирает адрес вида "1.1.1".
func ParseIndividualAddress(s string) (IndividualAddress, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	nums, err := atoiAll(parts)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	return NewIndividualAddress(nums[0], nums[1], nums[2])
}

// Area возвращает номер области.
func (a IndividualAddress) Area() int { return int(a >> 12) }

// Line возвращает номер линии.
func (a IndividualAddress) Line() int { return int(a>>8) & 0x0F }

// Device возвращает номер устройства на линии.
func (a IndividualAddress) Device() int { return int(a) & 0xFF }

func (a IndividualAddress) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Area(), a.Line(), a.Device())
}

// MarshalText реализует encoding.TextMarshaler.
func (a IndividualAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler.
func (a *IndividualAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseIndividualAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// GroupAddress — групповой адрес.
//
// Поддерживаемые формы записи:
//
//	main/middle/sub  — 5/3/8 бит (трёхуровневая)
//	main/sub         — 5/11 бит (двухуровневая)
//	n                — свободная, 0..65535
//
// String всегда возвращает трёхуровневую форму.
type GroupAddress uint16

// NewGroupAddress собирает трёхуровневый групповой адрес.
func NewGroupAddress(main, middle, sub int) (GroupAddress, error) {
	if main < 0 || main > 31 || middle < 0 || middle > 7 || sub < 0 || sub > 255 {
		return 0, fmt.Errorf("%w: %d/%d/%d out of range", ErrInvalidAddress, main, middle, sub)
	}
	return GroupAddress(main<<11 | middle<<8 | sub), nil
}

// ParseGroupAddress разбирает групповой адрес в любой из трёх форм.
func ParseGroupAddress(s string) (GroupAddress, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")

	nums, err := atoiAll(parts)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	switch len(nums) {
	case 3:
		return NewGroupAddress(nums[0], nums[1], nums[2])
	case 2:
		if nums[0] < 0 || nums[0] > 31 || nums[1] < 0 || nums[1] > 2047 {
			return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAddress, s)
		}
		return GroupAddress(nums[0]<<11 | nums[1]), nil
	case 1:
		if nums[0] < 0 || nums[0] > 0xFFFF {
			return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAddress, s)
		}
		return GroupAddress(nums[0]), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
}

// Main возвращает главную группу.
func (a GroupAddress) Main() int { return int(a >> 11) }

// Middle возвращает среднюю группу.
func (a GroupAddress) Middle() int { return int(a>>8) & 0x07 }

// Sub возвращает подгруппу.
func (a GroupAddress) Sub() int { return int(a) & 0xFF }

func (a GroupAddress) String() string {
	return fmt.Sprintf("%d/%d/%d", a.Main(), a.Middle(), a.Sub())
}

// MarshalText реализует encoding.TextMarshaler.
func (a GroupAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler.
func (a *GroupAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseGroupAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func atoiAll(parts []string) ([]int, error) {
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		nums[i] = n
	}
	return nums, nil
}
