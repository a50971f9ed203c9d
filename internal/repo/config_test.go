package repo

import "testing"

func TestReadConfigOnFreshRepoIsEmpty(t *testing.T) {
	r, _ := openRepo(t)
	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Author.Name != "" || cfg.Author.Email != "" {
		t.Fatalf("Author = %+v, want zero value", cfg.Author)
	}
	if len(cfg.Remotes) != 0 {
		t.Fatalf("Remotes = %v, want empty", cfg.Remotes)
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	r, _ := openRepo(t)
	cfg := &Config{
		Author:  AuthorConfig{Name: "Ada Lovelace", Email: "ada@example.com"},
		Signing: SigningConfig{KeyPath: "~/.ssh/id_ed25519"},
		Remotes: map[string]string{"origin": "https://example.com/repo.knot"},
	}
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	got, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if got.Author != cfg.Author {
		t.Errorf("Author = %+v, want %+v", got.Author, cfg.Author)
	}
	if got.Signing != cfg.Signing {
		t.Errorf("Signing = %+v, want %+v", got.Signing, cfg.Signing)
	}
	if got.Remotes["origin"] != cfg.Remotes["origin"] {
		t.Errorf("Remotes[origin] = %q, want %q", got.Remotes["origin"], cfg.Remotes["origin"])
	}
}

func TestSetRemoteAndRemoteURL(t *testing.T) {
	r, _ := openRepo(t)
	if err := r.SetRemote("origin", "https://example.com/repo.knot"); err != nil {
		t.Fatalf("SetRemote: %v", err)
	}
	url, err := r.RemoteURL("origin")
	if err != nil {
		t.Fatalf("RemoteURL: %v", err)
	}
	if url != "https://example.com/repo.knot" {
		t.Fatalf("RemoteURL(origin) = %q", url)
	}

	missing, err := r.RemoteURL("upstream")
	if err != nil {
		t.Fatalf("RemoteURL(upstream): %v", err)
	}
	if missing != "" {
		t.Fatalf("RemoteURL(upstream) = %q, want empty", missing)
	}
}

func TestIdentityFallsBackToConfigAuthor(t *testing.T) {
	r, _ := openRepo(t)
	if err := r.WriteConfig(&Config{Author: AuthorConfig{Name: "Grace Hopper", Email: "grace@example.com"}}); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	want := "Grace Hopper <grace@example.com>"
	if got := r.Identity(); got != want {
		t.Fatalf("Identity() = %q, want %q", got, want)
	}
}
