// Package files locates the CSV exports that feed the dashboard.
//
// Discovery lists the *.csv files directly under a category directory
// (data/datalab, data/blog, data/news). Results are sorted by file name so
// every ingestion pass sees the same order.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/srv/trendpulse")
//	for _, f := range discovery.Locate("data/datalab") {
//	    fmt.Println(f.Name)
//	}
package files
