package repos

import (
	"gorm.io/gorm"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos/user"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos/workflow"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

type UserRepo = user.UserRepo
type ProjectRepo = workflow.ProjectRepo
type TaskRepo = workflow.TaskRepo
type AssigneeStat = workflow.AssigneeStat

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return workflow.NewProjectRepo(db, baseLog)
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return workflow.NewTaskRepo(db, baseLog)
}
