package domain

import (
	"sort"
	"strings"
)

// Partition identifies a content type. Every chunk belongs to exactly one partition.
type Partition string

// Known partitions.
const (
	// PartitionDungeon holds dungeon guides.
	PartitionDungeon Partition = "dungeon"

	// PartitionQuest holds quest walkthroughs.
	PartitionQuest Partition = "quest"
)

// PartitionConfig describes where a partition lives in the backing stores.
type PartitionConfig struct {
	// Collection is the vector collection (or table partition) holding chunks.
	Collection string

	// Catalog is the collection (or list key) holding canonical titles.
	Catalog string

	// EntityKind is the user-facing name of a subject in this partition.
	EntityKind string
}

// partitionTable maps each partition to its storage configuration.
// Adding a content type only requires a new row here.
var partitionTable = map[Partition]PartitionConfig{
	PartitionDungeon: {
		Collection: "Vec_Dungeons",
		Catalog:    "Dungeons",
		EntityKind: "dungeon",
	},
	PartitionQuest: {
		Collection: "Vec_Quests",
		Catalog:    "Quests",
		EntityKind: "quest",
	},
}

// ParsePartition converts a user-supplied content type into a Partition.
// Matching ignores surrounding whitespace and case.
func ParsePartition(s string) (Partition, bool) {
	p := Partition(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", false
	}
	return p, true
}

// IsValid returns true if the partition is in the partition table.
func (p Partition) IsValid() bool {
	_, ok := partitionTable[p]
	return ok
}

// String returns the string representation.
func (p Partition) String() string {
	return string(p)
}

// Config returns the storage configuration for the partition.
// The zero value is returned for unknown partitions.
func (p Partition) Config() PartitionConfig {
	return partitionTable[p]
}

// Collection returns the chunk collection name.
func (p Partition) Collection() string {
	return partitionTable[p].Collection
}

// Catalog returns the title catalog name.
func (p Partition) Catalog() string {
	return partitionTable[p].Catalog
}

// EntityKind returns the user-facing subject kind (e.g. "dungeon").
func (p Partition) EntityKind() string {
	return partitionTable[p].EntityKind
}

// AllPartitions returns every known partition in a stable, sorted order.
func AllPartitions() []Partition {
	all := make([]Partition, 0, len(partitionTable))
	for p := range partitionTable {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

// PartitionNames returns the names of every known partition, sorted.
func PartitionNames() []string {
	all := AllPartitions()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.String()
	}
	return names
}
