/*
Command drive-fetch-backend serves files shared through Google Drive links.

A client posts a share link; the service extracts the file identifier,
downloads the file from Drive (confirming the virus-scan interstitial that
Drive shows for large files) and returns the bytes as an attachment. Batch
downloads are kept in a file cache so they can be retrieved again by
identifier.

# Routes

	GET  /, /health, /healthz, /livez   service status
	GET  /ready, /readyz                 readiness, checks the file cache
	POST /api/download-drive-file        {"url": "..."} -> file attachment
	POST /api/download-multiple          {"urls": [...]} or {"text": "..."} -> {"results": [...]}
	GET  /api/get-file/{fileID}          cached file attachment
	GET  /metrics                        Prometheus metrics

# Configuration

Settings come from the environment, optionally from .env,
.env.{ENVIRONMENT} and .env.local. The most common ones:

	PORT                 listen port (default 5555)
	LOG_LEVEL            debug, info, warn, error
	STORAGE_PROVIDER     filesystem (default) or s3
	STORAGE_PATH         base directory of the filesystem cache (default: OS temp dir)
	STORAGE_BUCKET       cache bucket (default drive-fetch)
	HTTP_TIMEOUT         deadline for requests to Drive (default none)
	FETCH_MAX_FILE_SIZE  largest accepted file in bytes (default 100 MiB)
	METRICS_BACKEND      prometheus (default) or cloudwatch

Inside AWS Lambda the same routes are served from API Gateway HTTP API
events.
*/
package main
