// Package content serves the news, events and videos published inside a
// sector or a subsector. Both scopes share one implementation; Scope picks
// the tables and the parent column.
package content

import (
	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/pkg/apperror"
)

// Kind is a content type.
type Kind string

const (
	KindNews   Kind = "news"
	KindEvents Kind = "events"
	KindVideos Kind = "videos"
)

// Scope describes where content lives.
type Scope struct {
	Name         string
	ParentTable  string
	ParentColumn string
	Resource     authz.Resource
	notFound     error
}

var (
	SectorScope = Scope{
		Name:         "sector",
		ParentTable:  "sectors",
		ParentColumn: "sector_id",
		Resource:     authz.SectorContent,
		notFound:     apperror.NotFound("Sector not found"),
	}
	SubsectorScope = Scope{
		Name:         "subsector",
		ParentTable:  "subsectors",
		ParentColumn: "subsector_id",
		Resource:     authz.SubsectorContent,
		notFound:     apperror.NotFound("Subsector not found"),
	}
)

// Table returns the table holding kind in this scope, e.g. subsector_news.
func (s Scope) Table(k Kind) string {
	return s.Name + "_" + string(k)
}
