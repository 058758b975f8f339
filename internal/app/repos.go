package app

import (
	"gorm.io/gorm"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/repos"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

type Repos struct {
	User    repos.UserRepo
	Project repos.ProjectRepo
	Task    repos.TaskRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:    repos.NewUserRepo(db, log),
		Project: repos.NewProjectRepo(db, log),
		Task:    repos.NewTaskRepo(db, log),
	}
}
