// Package file reads raw configuration documents from the filesystem.
//
// A Fetcher reads its file once, at construction time, and serves copies of the
// bytes afterwards. It implements settings.DataFetcher and backs every group read
// of the file loader, which builds one Fetcher per load.
//
// Usage:
//
//	fetcher, err := file.NewFetcher("/etc/app/config/app.yaml")()
//	if file.IsNotExist(err) {
//	    // the group has no file
//	}
//	data, err := fetcher.Fetch()
//
// Error Handling:
//   - Construction returns error if file cannot be read or path is a directory
//   - Errors include the filepath for easier debugging
//   - Use errors.Is(err, file.ErrPathIsDirectory) to check for directory errors
//   - Use file.IsNotExist(err) to check for missing files
package file
