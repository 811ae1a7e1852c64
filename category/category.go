package category

import (
	"fmt"
	"sort"
	"strings"
)

// Category identifies one component slot in a build.
type Category string

const (
	Processor       Category = "processor"
	Cooler          Category = "cooler"
	Motherboard     Category = "motherboard"
	Memory          Category = "memory"
	Storage         Category = "storage"
	Graphics        Category = "graphics"
	PowerSupply     Category = "power_supply"
	Case            Category = "case"
	Fans            Category = "fans"
	Networking      Category = "networking"
	OperatingSystem Category = "operating_system"
	Accessories     Category = "accessories"
	Promotion       Category = "promotion"
)

// Kind describes the shape of the selection a category holds.
type Kind int

const (
	// KindSingle holds at most one offering.
	KindSingle Kind = iota
	// KindSingleWithQuantity holds at most one offering together with a quantity >= 1.
	KindSingleWithQuantity
	// KindMulti holds an ordered list of offerings.
	KindMulti
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindSingleWithQuantity:
		return "single-with-quantity"
	case KindMulti:
		return "multi"
	default:
		return "unknown"
	}
}

// All returns every category in build order.
func All() []Category {
	return []Category{
		Processor,
		Cooler,
		Motherboard,
		Memory,
		Storage,
		Graphics,
		PowerSupply,
		Case,
		Fans,
		Networking,
		OperatingSystem,
		Accessories,
		Promotion,
	}
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case Processor, Cooler, Motherboard, Memory, Storage, Graphics, PowerSupply,
		Case, Fans, Networking, OperatingSystem, Accessories, Promotion:
		return true
	default:
		return false
	}
}

// Kind returns the static selection shape of the category.
func (c Category) Kind() Kind {
	switch c {
	case Memory:
		return KindSingleWithQuantity
	case Storage, Accessories:
		return KindMulti
	default:
		return KindSingle
	}
}

// AllowsMultiple reports whether more than one offering may be attached.
func (c Category) AllowsMultiple() bool {
	return c.Kind() == KindMulti
}

// HasQuantity reports whether the single attached offering carries a quantity.
func (c Category) HasQuantity() bool {
	return c.Kind() == KindSingleWithQuantity
}

// Label returns the human-facing name of the category.
func (c Category) Label() string {
	switch c {
	case Processor:
		return "Processor"
	case Cooler:
		return "CPU Cooler"
	case Motherboard:
		return "Motherboard"
	case Memory:
		return "Memory"
	case Storage:
		return "Storage"
	case Graphics:
		return "Graphics Card"
	case PowerSupply:
		return "Power Supply"
	case Case:
		return "Case"
	case Fans:
		return "Case Fans"
	case Networking:
		return "Networking"
	case OperatingSystem:
		return "Operating System"
	case Accessories:
		return "Accessories"
	case Promotion:
		return "Promotion"
	default:
		return string(c)
	}
}

func (c Category) String() string {
	return string(c)
}

// Parse returns the canonical Category for value or an error if it is unknown.
func Parse(value string) (Category, error) {
	if c := Normalize(value); c != "" {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q (known: %s)", value, strings.Join(knownStrings(), ", "))
}

// Normalize maps common shop-floor names onto a Category. Returns "" when
// nothing matches.
func Normalize(value string) Category {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case string(Processor), "cpu", "proc":
		return Processor
	case string(Cooler), "cpu_cooler", "cooling":
		return Cooler
	case string(Motherboard), "board", "mainboard", "mobo":
		return Motherboard
	case string(Memory), "ram", "dimm":
		return Memory
	case string(Storage), "ssd", "hdd", "nvme", "drive", "drives":
		return Storage
	case string(Graphics), "gpu", "graphics_card", "video":
		return Graphics
	case string(PowerSupply), "psu", "power", "powersupply":
		return PowerSupply
	case string(Case), "chassis", "tower":
		return Case
	case string(Fans), "fan", "case_fans":
		return Fans
	case string(Networking), "network", "wifi", "nic":
		return Networking
	case string(OperatingSystem), "os", "operatingsystem":
		return OperatingSystem
	case string(Accessories), "accessory", "peripherals":
		return Accessories
	case string(Promotion), "promo", "bundle":
		return Promotion
	default:
		return ""
	}
}

func knownStrings() []string {
	all := All()
	out := make([]string, 0, len(all))
	for _, c := range all {
		out = append(out, c.String())
	}
	sort.Strings(out)
	return out
}
