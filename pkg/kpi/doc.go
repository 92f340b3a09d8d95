// Package kpi derives the three hotel room KPIs from a night's room counts
// and revenue.
//
// Occupancy(roomsSold, totalRooms), ADR(totalRevenue, roomsSold) and
// RevPAR(totalRevenue, totalRooms) are pure functions. Each returns a Metric
// whose Valid flag is false exactly when the divisor is zero; no clamping is
// applied here (see package normalize for that).
//
// Compute(RoomMetrics) evaluates all three in one pass and returns a Result.
package kpi
