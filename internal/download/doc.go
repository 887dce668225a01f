// Package download fetches a single video link to a local file through yt-dlp
// (via github.com/lrstanley/go-ytdlp), applying a per-user quality ceiling.
package download
