package inserter

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/and-hom/tabconv/sqldb"
)

const QUEUE_SIZE = 512

// Background runs inserter in its own goroutine fed through a queue. The
// first error stops the inserts; it is returned by later calls of Add and
// by Close.
func Background(inserter sqldb.Inserter) sqldb.Inserter {
	backgroundInserter := &backgroundInserter{
		inserter: inserter,
		dataChan: make(chan []interface{}, QUEUE_SIZE),
	}
	backgroundInserter.wg.Add(1)
	go backgroundInserter.insertLoop()
	return backgroundInserter
}

type backgroundInserter struct {
	inserter sqldb.Inserter
	dataChan chan []interface{}
	wg       sync.WaitGroup

	mu      sync.Mutex
	err     error
	aborted error
}

func (this *backgroundInserter) insertLoop() {
	defer this.wg.Done()
	i := 1
	for args := range this.dataChan {
		if this.failure() != nil {
			// drain so that Add never blocks
			continue
		}
		if i%10000 == 0 {
			log.Debugf("%d rows inserted, %d queued", i, len(this.dataChan))
		}
		i += 1
		if err := this.inserter.Add(args...); err != nil {
			log.Error("Can not insert: ", err)
			this.setErr(err)
		}
	}

	if aborted := this.abortErr(); aborted != nil {
		if failer, ok := this.inserter.(sqldb.Failer); ok {
			failer.Fail(aborted)
		}
	} else if err := this.failure(); err != nil {
		if failer, ok := this.inserter.(sqldb.Failer); ok {
			failer.Fail(err)
		}
	}
	if err := this.inserter.Close(); err != nil {
		log.Error("Can not close inserter: ", err)
		this.setErr(err)
	}
}

func (this *backgroundInserter) setErr(err error) {
	this.mu.Lock()
	defer this.mu.Unlock()
	if this.err == nil {
		this.err = err
	}
}

func (this *backgroundInserter) failure() error {
	this.mu.Lock()
	defer this.mu.Unlock()
	if this.err != nil {
		return this.err
	}
	return this.aborted
}

func (this *backgroundInserter) abortErr() error {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.aborted
}

func (this *backgroundInserter) Add(args ...interface{}) error {
	if err := this.failure(); err != nil {
		return err
	}
	this.dataChan <- args
	return nil
}

// Fail stops the remaining inserts and rolls the wrapped inserter back.
func (this *backgroundInserter) Fail(err error) {
	this.mu.Lock()
	defer this.mu.Unlock()
	if this.aborted == nil {
		this.aborted = err
	}
}

func (this *backgroundInserter) Close() error {
	close(this.dataChan)
	this.wg.Wait()
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.err
}
