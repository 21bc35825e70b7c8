package rootpak

import (
	"fmt"

	"github.com/mirkobrombin/dabadee/pkg/dabadee"
	"github.com/mirkobrombin/dabadee/pkg/hash"
	"github.com/mirkobrombin/dabadee/pkg/processor"
	"github.com/mirkobrombin/dabadee/pkg/storage"
	"github.com/mirkobrombin/rootpak/pkg/tools"
)

// Dedup hard links the files of a built root against the dabadee store,
// so that roots built from the same base share their blocks. With an
// empty dest the root is deduplicated in place, otherwise the links are
// created under dest and the root is left as it is.
func (r *Rootpak) Dedup(path, dest string, verbose bool) error {
	root, err := tools.ExpandPath(path)
	if err != nil {
		return err
	}
	if !tools.Exists(root) {
		return fmt.Errorf("%s does not exist", root)
	}

	if dest != "" {
		dest, err = tools.ExpandPath(dest)
		if err != nil {
			return err
		}
	}

	s, err := storage.NewStorage(r.Options.DaBaDeeStoreOptions)
	if err != nil {
		return err
	}

	h := hash.NewSHA256Generator()
	p := processor.NewDedupProcessor(root, dest, s, h, 2)

	d := dabadee.NewDaBaDee(p, verbose)
	return d.Run()
}
