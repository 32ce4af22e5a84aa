package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/issuetrack/tracker"
)

type ActivityStore struct {
	lastId int64
	logs   map[tracker.UserId][]tracker.ActivityLog
	mutex  sync.RWMutex
}

var _ tracker.ActivityStore = (*ActivityStore)(nil)

func NewActivityStore() *ActivityStore {
	return &ActivityStore{
		logs: make(map[tracker.UserId][]tracker.ActivityLog),
	}
}

func (s *ActivityStore) AddLog(ctx context.Context, userId tracker.UserId, activity tracker.Activity) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data := activity.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	s.lastId++
	s.logs[userId] = append(s.logs[userId], tracker.ActivityLog{
		Id:        s.lastId,
		CreatedAt: time.Now().UTC(),
		UserId:    userId,
		Name:      activity.Name,
		Data:      data,
	})
	return nil
}

func (s *ActivityStore) ByUserId(ctx context.Context, userId tracker.UserId, limit int) ([]tracker.ActivityLog, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ulogs := s.logs[userId]
	if limit < 0 {
		limit = 0
	}
	if limit > len(ulogs) {
		limit = len(ulogs)
	}
	logs := make([]tracker.ActivityLog, 0, limit)
	for i := len(ulogs) - 1; i >= 0 && len(logs) < limit; i-- {
		logs = append(logs, ulogs[i])
	}
	return logs, nil
}
