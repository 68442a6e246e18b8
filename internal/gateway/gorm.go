package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

type GormGateway struct {
	db *gorm.DB
}

func New(db *gorm.DB) *GormGateway {
	return &GormGateway{db: db}
}

func (g *GormGateway) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var a models.Article
	if err := g.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (g *GormGateway) ReadCounter(ctx context.Context, id string, field models.Counter) (*int64, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unknown counter %q", field)
	}
	var v sql.NullInt64
	row := g.db.WithContext(ctx).Model(&models.Article{}).Select(string(field)).Where("id = ?", id).Row()
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !v.Valid {
		return nil, nil
	}
	return &v.Int64, nil
}

func (g *GormGateway) IncrementViews(ctx context.Context, id string, n int64) error {
	res := g.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("COALESCE(view_count, 0) + ?", n))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormGateway) CreateArticle(ctx context.Context, a *models.Article) error {
	return translate(g.db.WithContext(ctx).Create(a).Error)
}

func (g *GormGateway) ListArticles(ctx context.Context, q ArticleQuery) ([]models.Article, error) {
	tx := g.db.WithContext(ctx).Model(&models.Article{})
	if q.AuthorID != "" {
		tx = tx.Where("author_id = ?", q.AuthorID)
	}
	order := q.OrderBy
	if order == "" {
		order = "created_at DESC"
	}
	tx = tx.Order(order).Order("id DESC")
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var list []models.Article
	if err := tx.Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

// ArticlesByTag tags 以 JSON 文本存储，按带引号的 JSON 字符串做包含匹配
func (g *GormGateway) ArticlesByTag(ctx context.Context, tag string, limit int) ([]models.Article, error) {
	needle, _ := json.Marshal(tag)
	var list []models.Article
	err := g.db.WithContext(ctx).
		Where(`tags LIKE ? ESCAPE '\'`, "%"+escapeLike(string(needle))+"%").
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike 让用户输入里的 % 和 _ 按字面匹配
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (g *GormGateway) SearchArticles(ctx context.Context, query string, limit int) ([]models.Article, error) {
	like := "LIKE"
	if g.db.Dialector.Name() == "postgres" {
		like = "ILIKE"
	}
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	var list []models.Article
	err := g.db.WithContext(ctx).
		Where(fmt.Sprintf(`(title %[1]s ? ESCAPE '\' OR summary %[1]s ? ESCAPE '\' OR tags %[1]s ? ESCAPE '\')`, like), pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (g *GormGateway) BookmarkedArticles(ctx context.Context, userID string) ([]models.Article, error) {
	var list []models.Article
	err := g.db.WithContext(ctx).
		Select("articles.*").
		Joins("JOIN bookmarks ON bookmarks.article_id = articles.id").
		Where("bookmarks.user_id = ?", userID).
		Order("bookmarks.created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (g *GormGateway) CreateComment(ctx context.Context, c *models.Comment) error {
	return translate(g.db.WithContext(ctx).Create(c).Error)
}

func (g *GormGateway) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	if err := g.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (g *GormGateway) ListComments(ctx context.Context, articleID string) ([]models.Comment, error) {
	var list []models.Comment
	err := g.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("created_at DESC").Order("id DESC").
		Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (g *GormGateway) DeleteComment(ctx context.Context, commentID, requesterID string) (int64, error) {
	res := g.db.WithContext(ctx).
		Where("id = ?", commentID).
		Where("(user_id = ? OR article_id IN (SELECT id FROM articles WHERE author_id = ?))", requesterID, requesterID).
		Delete(&models.Comment{})
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

func toggleModel(kind models.ToggleKind, articleID, userID string) interface{} {
	if kind == models.KindBookmark {
		return &models.Bookmark{ArticleID: articleID, UserID: userID}
	}
	return &models.Like{ArticleID: articleID, UserID: userID}
}

func (g *GormGateway) ToggleExists(ctx context.Context, kind models.ToggleKind, articleID, userID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Table(kind.Table()).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (g *GormGateway) CreateToggle(ctx context.Context, kind models.ToggleKind, articleID, userID string) error {
	return translate(g.db.WithContext(ctx).Create(toggleModel(kind, articleID, userID)).Error)
}

// DeleteToggle 幂等：行不存在时也返回 nil
func (g *GormGateway) DeleteToggle(ctx context.Context, kind models.ToggleKind, articleID, userID string) error {
	err := g.db.WithContext(ctx).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Delete(toggleModel(kind, "", "")).Error
	return translate(err)
}

func (g *GormGateway) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := g.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (g *GormGateway) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := g.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (g *GormGateway) CreateUser(ctx context.Context, u *models.User) error {
	return translate(g.db.WithContext(ctx).Create(u).Error)
}

func (g *GormGateway) UpdateUser(ctx context.Context, u *models.User, columns ...string) error {
	tx := g.db.WithContext(ctx).Model(u)
	if len(columns) > 0 {
		tx = tx.Select(columns)
	}
	return translate(tx.Updates(u).Error)
}
