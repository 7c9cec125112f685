/*
Package guipath locates elements of a live UI tree from a chain of path steps.

Each step selects its own search strategy through its occurrence:

  - > 0: indexed breadth-first search, returning the Nth match of the subtree;
  - == 0: index discovery, trying direct children in order and binding the
    1-based index of the first one whose remainder resolves;
  - < 0: depth-first search, preferring a unique container child.

A Visitor is told about every match of a non-terminal step, so it can make the
next level visible (e.g. click a collapsed menu), and about the step that
failed when nothing is found.
*/
package guipath
