// Sync, test and repair the gap between "write returned" and "bytes on
// disk": outagefs mounts a journal as a single file, records what the
// guest writes, and replays arbitrary crash points.
package main

import (
	"github.com/outagefs/outagefs/cmd"
	_ "github.com/outagefs/outagefs/cmd/all" // import all commands
)

func main() {
	cmd.Main()
}
