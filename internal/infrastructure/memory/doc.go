// Package memory implementa los puertos de inventario, órdenes y reserva de order_id
// en memoria de proceso. Se usa en desarrollo (DB_DRIVER=memory) y en los tests;
// todas las operaciones son seguras para acceso concurrente.
package memory
