//go:build !unix && !windows

package privilege

func canWriteDirect(string) bool {
	return false
}

func elevationLauncher() (Launcher, string, bool) {
	return nil, "", false
}
