package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

var ErrYearNotFound = errors.New("budget year not found")

const snapshotFileName = "gul_bok_full.json"

// Repository loads published budget years. Returned years are shared and must
// not be modified.
type Repository interface {
	Load(ctx context.Context, year int) (*BudgetYear, error)
}

// FileRepository reads snapshot files laid out as <dir>/<year>/gul_bok_full.json.
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

func (r *FileRepository) Load(ctx context.Context, year int) (*BudgetYear, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(r.dir, strconv.Itoa(year), snapshotFileName)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debugf("no snapshot for year %d at %s", year, path)
			return nil, fmt.Errorf("%w: %d", ErrYearNotFound, year)
		}
		log.Errorf("failed to open snapshot %s: %v", path, err)
		return nil, err
	}
	defer f.Close()

	var budgetYear BudgetYear
	if err := json.NewDecoder(f).Decode(&budgetYear); err != nil {
		err = fmt.Errorf("failed to decode snapshot %s: %w", path, err)
		log.Error(err)
		return nil, err
	}
	fillLineItemGroups(&budgetYear)
	return &budgetYear, nil
}

// CachedRepository keeps decoded years in memory for the configured TTL.
// Missing years are not cached so a newly exported year shows up at once.
type CachedRepository struct {
	next  Repository
	cache *cache.Cache
}

func NewCachedRepository(next Repository, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *CachedRepository) Load(ctx context.Context, year int) (*BudgetYear, error) {
	key := strconv.Itoa(year)
	if cached, found := r.cache.Get(key); found {
		return cached.(*BudgetYear), nil
	}
	budgetYear, err := r.next.Load(ctx, year)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, budgetYear, cache.DefaultExpiration)
	return budgetYear, nil
}

// Evict drops a cached year, used when a year is republished.
func (r *CachedRepository) Evict(year int) {
	r.cache.Delete(strconv.Itoa(year))
}
