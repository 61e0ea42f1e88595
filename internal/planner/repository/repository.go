package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Project  *ProjectRepository
	Module   *ModuleRepository
	Task     *TaskRepository
	Proposal *ProposalRepository
	History  *HistoryRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Project:  NewProjectRepository(db),
		Module:   NewModuleRepository(db),
		Task:     NewTaskRepository(db),
		Proposal: NewProposalRepository(db),
		History:  NewHistoryRepository(db),
	}
}

// WithTx 返回基于指定事务的仓库集合副本
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return NewRepositories(tx)
}
