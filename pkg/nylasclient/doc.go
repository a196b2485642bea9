// Package nylasclient provides the main entry point for creating Nylas API clients.
//
//	cli, err := nylasclient.New(&nylas.Config{
//	  APIKey: os.Getenv("NYLAS_API_KEY"),
//	  Region: nylas.RegionEU,
//	})
//
// The returned client is safe for concurrent use. Its configuration is fixed
// at construction; use nylas.WithOverrides to change the API key, base URI,
// timeout or headers of a single call.
package nylasclient
