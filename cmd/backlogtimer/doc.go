// Command backlogtimer enriches a RetroAchievements Want to Play list with
// HowLongToBeat estimates and player-reported mastery times, then ranks the
// backlog by points earned per hour.
//
// The scan command is resumable: progress is checkpointed after every batch,
// so an interrupted scan picks up where it stopped. Summary, estimate, and
// export commands work offline from the last saved table.
package main
