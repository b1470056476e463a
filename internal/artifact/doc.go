// Package artifact resolves the dependency buckets the system test task feeds
// to the executor's class path.
//
// A Bucket holds declared entries, each either a Maven coordinate
// (group:name:version[:classifier][@ext]) or a path to a local file, plus
// optional default entries used only when nothing is declared. Resolving a
// bucket turns its entries into files:
//
//   - Coordinates are looked up in the local repository (Maven layout) first,
//     then downloaded from each remote repository in turn. Downloads are
//     retried with exponential back-off and written atomically into the
//     local repository.
//   - Transitive buckets also follow the direct compile and runtime
//     dependencies listed in each artifact's POM.
//   - Independent entries resolve concurrently; the result keeps declaration
//     order with duplicates removed.
package artifact
