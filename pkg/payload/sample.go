package payload

// Sample returns a minimal payload for a push build of
// example_owner/example_repo at commit abcdef on master. Tests start from it
// and change what they need.
func Sample() *Payload {
	return &Payload{
		Job: Job{
			Branch: "master",
			Commit: "abcdef",
		},
		Repository: Repository{
			Slug:      "example_owner/example_repo",
			SourceURL: "git://github.com/example_owner/example_repo.git",
		},
		Config: Config{
			Git: DefaultGitConfig(),
		},
	}
}
