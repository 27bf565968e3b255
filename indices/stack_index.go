package indices

import (
	"context"
	"sync"

	"stackrent/account"
	"stackrent/bizerror"
	"stackrent/client/es"
	"stackrent/domain"
	"stackrent/persistence"
	"stackrent/session"

	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const StackIndexName = "stacks"

type IndexerTraits interface {
	IndexStacks(stacks []domain.Stack)
	ScheduleFullSync(sec *session.Session) (bool, error)
	SearchStacks(q *StackSearchQuery, sec *session.Session) ([]domain.Stack, error)
}

type Indexer struct {
	ds *persistence.DataSourceManager
	es es.ClientTraits

	lock    sync.Mutex
	running bool
}

func NewIndexer(ds *persistence.DataSourceManager, esClient es.ClientTraits) *Indexer {
	return &Indexer{ds: ds, es: esClient}
}

// IndexStacks pushes catalog rows into the search index. Best effort:
// failures are logged and skipped, the catalog stays authoritative.
func (ix *Indexer) IndexStacks(stacks []domain.Stack) {
	for _, stack := range stacks {
		if err := ix.es.Index(context.Background(), StackIndexName, stack.ID, &stack); err != nil {
			logrus.Errorf("index stack %d failed: %v", stack.ID, err)
		}
	}
}

// StartCron resyncs the whole catalog nightly.
func (ix *Indexer) StartCron() {
	crontab := cron.New(cron.WithSeconds())
	crontab.AddFunc("0 0 23 * * ?", func() { ix.FullSync() })
	crontab.Start()
}

func (ix *Indexer) FullSync() {
	page := 1
	pageSize := 500

	db := ix.ds.GormDB(nil)
	for {
		var stacks []domain.Stack
		if err := db.Model(&domain.Stack{}).Order("id ASC").
			Offset((page - 1) * pageSize).Limit(pageSize).Find(&stacks).Error; err != nil {
			logrus.Errorf("stack full sync: page = %d, pageSize = %d, err = %v", page, pageSize, err)
			break
		}
		if len(stacks) == 0 {
			logrus.Infof("stack full sync: no more stacks to index")
			break
		}
		ix.IndexStacks(stacks)
		page++
	}
}

// ScheduleFullSync starts one background full sync unless one is already
// running. Returns whether a new run was started.
func (ix *Indexer) ScheduleFullSync(sec *session.Session) (bool, error) {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return false, bizerror.ErrForbidden
	}

	ix.lock.Lock()
	if ix.running {
		ix.lock.Unlock()
		return false, nil
	}
	ix.running = true
	ix.lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			ix.lock.Lock()
			ix.running = false
			ix.lock.Unlock()
		}()
		ix.FullSync()
	}()
	waitRunning.Wait()
	return true, nil
}
