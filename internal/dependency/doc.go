// Package dependency provides the directed graph used to order task
// execution.
//
// Each node is a task; its DependsOn edges name the tasks that must run
// first. Order returns the requested tasks together with everything they
// depend on, dependencies first, and fails with a CycleError if the edges
// loop back on themselves.
//
//	g := dependency.New()
//	g.AddNode(dependency.Node{ID: "systemTest", DependsOn: []dependency.NodeID{"systemTestPrepareDebug"}})
//	g.AddNode(dependency.Node{ID: "systemTestPrepareDebug"})
//	order, err := g.Order("systemTest")
//	// order == [systemTestPrepareDebug systemTest]
package dependency
