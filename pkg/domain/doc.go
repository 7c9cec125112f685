/*
Package domain contains the core data model of the sensact rule engine.

It is kept free of I/O: everything here is plain data plus the small amount of
logic that belongs to the data itself (substitution, goal binding, path parsing).

# Key Entities

  - Record: a named, ordered attribute bag describing a condition, an action or a goal.
  - Rule / RuleSet: declarative condition+action records and their named collections.
  - Library: the name -> RuleSet resolver shared by all engines of a run.
  - PathStep: one link of a GUI path describing a level of UI-tree descent.
  - Snapshot: the persisted outcome of a top-level run.
*/
package domain
