package api_v1

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/psource-dev/psman/internal/api_v1/resp"
	"github.com/psource-dev/psman/internal/database/auditlog"
)

// GetRepoInfo returns repository metadata for the dashboard.
func GetRepoInfo(c *gin.Context) {
	repo := c.Param("owner") + "/" + c.Param("repo")
	info, err := ghClient.Repo(repo)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	resp.RespondSuccess(c, info)
}

// GetRepoReleases lists recent releases of a repository, newest first.
func GetRepoReleases(c *gin.Context) {
	repo := c.Param("owner") + "/" + c.Param("repo")
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	releases, err := ghClient.Releases(repo, perPage)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	resp.RespondSuccess(c, releases)
}

// ClearGitHubCache drops cached release and repository lookups. With a repo
// query parameter only that repository is dropped.
func ClearGitHubCache(c *gin.Context) {
	repo := c.Query("repo")
	ghClient.ClearCache(repo)
	auditlog.Log(c.ClientIP(), "admin", "cleared github cache", "info")
	resp.RespondSuccessMessage(c, "Cache cleared.", nil)
}
