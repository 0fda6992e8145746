package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/library/internal/models"
	"github.com/Skotchmaster/library/internal/transport"
)

func like(q string) string {
	return "%" + strings.ToLower(q) + "%"
}

func orderBy(sort string, desc bool) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: sort}, Desc: desc}
}

// ListAuthors expects q.Sort to be a whitelisted column name.
func (r *GormRepo) ListAuthors(ctx context.Context, q transport.AuthorQuery) (int64, []models.Author, error) {
	base := r.DB.WithContext(ctx).Model(&models.Author{})
	if q.Q != "" {
		base = base.Where("LOWER(nome) LIKE ?", like(q.Q))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Author
	err := base.Session(&gorm.Session{}).Order(orderBy(q.Sort, q.Desc)).Order("id").
		Offset(q.Offset).Limit(q.Limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetAuthor(ctx context.Context, id uint) (*models.Author, error) {
	var a models.Author
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *GormRepo) CreateAuthor(ctx context.Context, a *models.Author) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormRepo) SaveAuthor(ctx context.Context, a *models.Author) error {
	return r.DB.WithContext(ctx).Save(a).Error
}

// DeleteAuthor refuses with ErrConflict while the author still has books.
func (r *GormRepo) DeleteAuthor(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Author
		if err := tx.First(&a, id).Error; err != nil {
			return notFound(err)
		}
		var books int64
		if err := tx.Model(&models.Book{}).Where("author_id = ?", id).Count(&books).Error; err != nil {
			return err
		}
		if books > 0 {
			return ErrConflict
		}
		return tx.Delete(&a).Error
	})
}

func (r *GormRepo) ListBooks(ctx context.Context, q transport.BookQuery) (int64, []models.Book, error) {
	base := r.DB.WithContext(ctx).Model(&models.Book{})
	if q.Q != "" {
		pat := like(q.Q)
		base = base.Where("(LOWER(titulo) LIKE ? OR LOWER(genero) LIKE ?)", pat, pat)
	}
	if q.AuthorID != nil {
		base = base.Where("author_id = ?", *q.AuthorID)
	}
	if q.Disponivel != nil {
		base = base.Where("disponivel = ?", *q.Disponivel)
	}
	if q.AnoDe != nil {
		base = base.Where("ano_publicacao >= ?", *q.AnoDe)
	}
	if q.AnoAte != nil {
		base = base.Where("ano_publicacao <= ?", *q.AnoAte)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Book
	err := base.Session(&gorm.Session{}).Preload("Author").
		Order(orderBy(q.Sort, q.Desc)).Order("id").
		Offset(q.Offset).Limit(q.Limit).
		Find(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).Preload("Author").First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *GormRepo) CreateBook(ctx context.Context, b *models.Book) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (r *GormRepo) SaveBook(ctx context.Context, b *models.Book) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(b).Error
}

func (r *GormRepo) DeleteBook(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Book{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BookTitleTaken reports whether authorID already has a book called titulo,
// ignoring the book with id exceptID.
func (r *GormRepo) BookTitleTaken(ctx context.Context, authorID uint, titulo string, exceptID uint) (bool, error) {
	var n int64
	tx := r.DB.WithContext(ctx).Model(&models.Book{}).
		Where("author_id = ? AND titulo = ?", authorID, titulo)
	if exceptID != 0 {
		tx = tx.Where("id <> ?", exceptID)
	}
	if err := tx.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
