package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// 计数由触发器维护：likes → like_count, bookmarks → bookmark_count, comments → comment_count
var counterTables = []struct {
	table  string
	column string
}{
	{"likes", "like_count"},
	{"bookmarks", "bookmark_count"},
	{"comments", "comment_count"},
}

const pgCounterFunc = `CREATE OR REPLACE FUNCTION bump_article_counter() RETURNS trigger AS $$
BEGIN
	IF TG_OP = 'INSERT' THEN
		EXECUTE format('UPDATE articles SET %I = %I + 1 WHERE id = $1', TG_ARGV[0], TG_ARGV[0]) USING NEW.article_id;
		RETURN NEW;
	END IF;
	EXECUTE format('UPDATE articles SET %I = GREATEST(%I - 1, 0) WHERE id = $1', TG_ARGV[0], TG_ARGV[0]) USING OLD.article_id;
	RETURN OLD;
END;
$$ LANGUAGE plpgsql`

func installTriggers(conn *gorm.DB) error {
	var stmts []string
	switch conn.Dialector.Name() {
	case "postgres":
		stmts = append(stmts, pgCounterFunc)
		for _, t := range counterTables {
			name := t.table + "_counter"
			stmts = append(stmts,
				fmt.Sprintf("DROP TRIGGER IF EXISTS %s ON %s", name, t.table),
				fmt.Sprintf("CREATE TRIGGER %s AFTER INSERT OR DELETE ON %s FOR EACH ROW EXECUTE FUNCTION bump_article_counter('%s')",
					name, t.table, t.column),
			)
		}
	case "sqlite":
		for _, t := range counterTables {
			stmts = append(stmts,
				fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_after_insert AFTER INSERT ON %s BEGIN
	UPDATE articles SET %s = %s + 1 WHERE id = NEW.article_id;
END`, t.table, t.table, t.column, t.column),
				fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_after_delete AFTER DELETE ON %s BEGIN
	UPDATE articles SET %s = MAX(%s - 1, 0) WHERE id = OLD.article_id;
END`, t.table, t.table, t.column, t.column),
			)
		}
	default:
		return fmt.Errorf("no counter triggers for dialect %q", conn.Dialector.Name())
	}

	// 逐条执行，pgx 扩展协议不支持一次提交多条语句
	for _, stmt := range stmts {
		if err := conn.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

const calibrateSQL = `UPDATE articles SET
	like_count = (SELECT COUNT(*) FROM likes WHERE likes.article_id = articles.id),
	bookmark_count = (SELECT COUNT(*) FROM bookmarks WHERE bookmarks.article_id = articles.id),
	comment_count = (SELECT COUNT(*) FROM comments WHERE comments.article_id = articles.id)`

// Calibrate 根据实际行数重算点赞、收藏、评论计数，返回被更新的文章数
func Calibrate(ctx context.Context, conn *gorm.DB) (int64, error) {
	res := conn.WithContext(ctx).Exec(calibrateSQL)
	if res.Error != nil {
		return 0, fmt.Errorf("calibrate counters: %w", res.Error)
	}
	return res.RowsAffected, nil
}
