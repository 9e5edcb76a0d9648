package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/terraincognita07/mindful/internal/db"
	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
	"gorm.io/gorm"
)

// Context is shared by every operator command. The database is opened on
// first use so commands that never touch it stay cheap.
type Context struct {
	DBPath   string
	Location *time.Location
	Out      io.Writer
	Stdin    *os.File
	Now      func() time.Time

	database     *gorm.DB
	repositories *db.Repositories
}

func NewContext(dbPath string, location *time.Location) *Context {
	return &Context{
		DBPath:   dbPath,
		Location: location,
		Out:      os.Stdout,
		Stdin:    os.Stdin,
		Now:      time.Now,
	}
}

func (ctx *Context) Database() (*gorm.DB, error) {
	if ctx.database != nil {
		return ctx.database, nil
	}
	database, err := db.OpenSQLite(ctx.DBPath)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	ctx.database = database
	ctx.repositories = db.NewRepositories(database)
	return database, nil
}

func (ctx *Context) Repositories() (*db.Repositories, error) {
	if _, err := ctx.Database(); err != nil {
		return nil, err
	}
	return ctx.repositories, nil
}

func (ctx *Context) Close() error {
	if ctx.database == nil {
		return nil
	}
	sqlDB, err := ctx.database.DB()
	if err != nil {
		return err
	}
	ctx.database = nil
	ctx.repositories = nil
	return sqlDB.Close()
}

func (ctx *Context) location() *time.Location {
	if ctx.Location == nil {
		return time.UTC
	}
	return ctx.Location
}

func (ctx *Context) now() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return ctx.Now()
}

func (ctx *Context) badgeService(repos *db.Repositories) *services.BadgeService {
	return services.NewBadgeService(
		repos.Badges,
		repos.Entries,
		repos.Habits,
		repos.Exports,
		repos.Notifications,
		repos.Users,
		ctx.location(),
	)
}

// findUser resolves an account by email for operator commands.
func (ctx *Context) findUser(email string) (models.User, *db.Repositories, error) {
	normalizedEmail := services.NormalizeAuthEmail(email)
	if normalizedEmail == "" {
		return models.User{}, nil, errors.New("a valid email is required")
	}

	repos, err := ctx.Repositories()
	if err != nil {
		return models.User{}, nil, err
	}
	user, err := repos.Users.FindByNormalizedEmail(normalizedEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, nil, fmt.Errorf("user %s not found", normalizedEmail)
		}
		return models.User{}, nil, fmt.Errorf("load user: %w", err)
	}
	return user, repos, nil
}
