package namespace

import (
	"context"

	"github.com/Anson14/ndnfs-d/internal/metastore"
)

// CommitVersion updates a FileRecord's current_version, size, and
// signature_state after internal/segment has durably promoted or
// truncated a new version. It is the only point where internal/fsop
// writes into the namespace layer on behalf of content operations,
// keeping segment layout entirely out of this package.
func (m *Manager) CommitVersion(ctx context.Context, p string, version, size int64, state metastore.SignatureState) error {
	p = canonical(p)
	f, err := m.store.GetFile(ctx, nil, p)
	if err != nil {
		return err
	}
	f.CurrentVersion = version
	f.Size = size
	f.SignatureState = state
	return m.store.UpdateFile(ctx, nil, f)
}
