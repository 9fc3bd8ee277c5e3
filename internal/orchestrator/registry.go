package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Runbook/internal/domain"
)

// Registry — потокобезопасный реестр задач оркестратора.
//
// Все мутации — поэлементные, под одним идентификатором; инвариантов
// между записями нет, поэтому достаточно атомарности на уровне записи.
// Читатели получают копии записей (snapshot-семантика), а не живые
// ссылки.
type Registry struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.TaskInfo
}

// NewRegistry создаёт пустой Registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[uuid.UUID]*domain.TaskInfo),
	}
}

// Insert добавляет задачу в реестр.
func (r *Registry) Insert(task *domain.TaskInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
}

// Update атомарно применяет fn к записи с данным ID.
// Возвращает false, если записи нет.
func (r *Registry) Update(id uuid.UUID, fn func(*domain.TaskInfo)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return false
	}
	fn(task)
	return true
}

// Get возвращает копию записи по ID.
func (r *Registry) Get(id uuid.UUID) (domain.TaskInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return domain.TaskInfo{}, false
	}
	return *task, true
}

// List возвращает snapshot всех записей.
func (r *Registry) List() []domain.TaskInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]domain.TaskInfo, 0, len(r.tasks))
	for _, task := range r.tasks {
		list = append(list, *task)
	}
	return list
}

// Remove удаляет запись по ID.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
}

// Len возвращает количество записей.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// RemoveFinishedBefore удаляет записи в финальном статусе,
// завершившиеся раньше cutoff. Возвращает количество удалённых.
//
// Записи в нефинальном статусе не удаляются независимо от возраста.
func (r *Registry) RemoveFinishedBefore(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, task := range r.tasks {
		if !task.Status.IsTerminal() {
			continue
		}
		if task.CompletedAt == nil || !task.CompletedAt.Before(cutoff) {
			continue
		}
		delete(r.tasks, id)
		removed++
	}
	return removed
}
