package legacystore

import "time"

// Flattened value snapshots of legacy records. The reader copies rows into
// these at fetch time and never hands out live store references, so nothing
// downstream can observe a row invalidated by a later query.
//
// PK is the store-internal row key used to fetch children; ID is the stable
// identifier string carried over into the new model when parseable.

type LegacyProject struct {
	PK          int64
	ID          string
	Name        string
	ProjectType string
	CreatedOn   time.Time
}

type LegacyText struct {
	PK        int64
	ID        string
	Name      string
	GroupName string
	CreatedOn time.Time
}

type LegacyVersion struct {
	PK            int64
	ID            string
	Date          time.Time
	VersionNumber int
	Comment       string
	HasBody       bool
}

type LegacyCollection struct {
	PK             int64
	ID             string
	Name           string
	CollectionType string
	CreatedOn      time.Time
}

type LegacyScene struct {
	PK          int64
	ID          string
	Name        string
	Description string
	CreatedOn   time.Time
}

type LegacyCharacter struct {
	PK          int64
	ID          string
	Name        string
	Description string
	CreatedOn   time.Time
}

type LegacyLocation struct {
	PK          int64
	ID          string
	Name        string
	Description string
	CreatedOn   time.Time
}
