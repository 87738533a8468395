// Package crud holds the generic gorm repository shared by the per-entity
// repositories, together with the paging, sorting and error translation they
// all rely on.
//
// # Usage
//
//	type Repository struct {
//		crud.Base[entities.Author]
//	}
//
//	func NewRepository(db *gorm.DB, sorts crud.SortFields) *Repository {
//		return &Repository{Base: crud.NewBase[entities.Author](db, "author", sorts)}
//	}
//
// Writes run inside a savepoint when the handle is already a transaction, so
// a failed insert can be recovered from without aborting the surrounding
// unit of work.
package crud
